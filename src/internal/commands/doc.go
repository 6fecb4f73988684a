// Package commands implements CLI command handlers for apimanctl.
//
// Each command implements the Runner interface:
//   - Init(): Parse arguments, layer flags over settings and load the declaration
//   - Run(): Execute the command
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - apply: Reconcile the management server with a declaration
//   - validate: Load and validate a declaration without contacting the server
//   - render: Print the resolved declaration as JSON or YAML
//
// # Example Usage
//
//	cmd := commands.CreateApplyCommand()
//	ctx := &commands.AppContext{Settings: config.DefaultSettings()}
//	if err := cmd.Init([]string{"-f", "apis.yml"}, ctx); err != nil {
//	    os.Exit(commands.ExitCode(err))
//	}
//	err := cmd.Run()
//	os.Exit(commands.ExitCode(err))
//
// Load failures abort in Init, before any remote call is made.
package commands
