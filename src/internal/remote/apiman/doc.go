// Package apiman implements remote.Capabilities over the apiman Management
// REST API.
//
// The client speaks two dialects selected by remote.ServerVersion: v12x
// addresses APIs under /organizations/{org}/apis and publishes with the
// publishAPI action, v11x uses /organizations/{org}/services and
// publishService.
//
// # Example Usage
//
//	client := apiman.NewClient(apiman.Config{
//	    Address:  "http://localhost:8080/apiman",
//	    Username: "admin",
//	    Password: "admin123",
//	    Version:  remote.ServerV12x,
//	})
//	eng, err := engine.New(client.Capabilities(), engine.Options{})
//
// # Retries
//
// GET and PUT requests are retried with exponential backoff on transport
// errors and 5xx responses. POST requests are never retried since they are
// not idempotent. A 404 on a probe means the entity is absent.
package apiman
