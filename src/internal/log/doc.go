// Package log provides simple leveled logging for apimanctl.
//
// The package keeps a small global API (Debugf, Infof, Warnf, Errorf, Fatalf)
// on top of a zerolog console logger. Errors are written to stderr, everything
// else to stdout unless SetForceStdErr is enabled. Colors are only emitted when
// the destination is a terminal.
//
// # Example Usage
//
//	log.SetVerbose(true)
//	log.Debugf("Loaded %d gateways", len(gateways))
//	log.Errorf("Failed to connect: %v", err)
//
// Structured events go through Logger:
//
//	log.Logger().Info().Str("type", "api").Str("key", "acme/orders").Msg("created")
package log
