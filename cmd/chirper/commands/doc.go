// Package commands defines the chirper CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - run    Execute a single posting attempt and exit
//   - start  Run the posting job on a cron schedule until interrupted
//
// # Implementation
//
// The root command loads configuration (file plus environment, secrets
// only from the environment) and builds the logger before any subcommand
// runs. Subcommands assemble the bot pipeline from that shared state.
package commands
