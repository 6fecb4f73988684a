package apiman

// Wire representations of management API resources.

type errorBean struct {
	Type      string `json:"type,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
	Message   string `json:"message"`
}

type gatewayBean struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	// Configuration is a JSON document encoded as a string.
	Configuration string `json:"configuration"`
}

type gatewayConfiguration struct {
	Endpoint string `json:"endpoint"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type pluginBean struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Type       string `json:"type,omitempty"`
}

type orgBean struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
}

type apiBean struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
}

type versionBean struct {
	Version string `json:"version"`
	Status  string `json:"status,omitempty"`
}

type gatewayRef struct {
	GatewayID string `json:"gatewayId"`
}

type policySummary struct {
	ID                 int64  `json:"id"`
	PolicyDefinitionID string `json:"policyDefinitionId"`
}

type newPolicyBean struct {
	DefinitionID string `json:"definitionId"`
	// Configuration is the policy config encoded as a JSON string.
	Configuration string `json:"configuration"`
}

type updatePolicyBean struct {
	Configuration string `json:"configuration"`
}

type actionBean struct {
	Type           string `json:"type"`
	OrganizationID string `json:"organizationId"`
	EntityID       string `json:"entityId"`
	EntityVersion  string `json:"entityVersion"`
}

const statusPublished = "Published"
