// Package app wires the dashboard together and manages its lifecycle:
// configuration, logging and telemetry, the dataset source and services,
// the HTTP router and graceful shutdown.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, a YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Build the dataset source selected by the configuration
//	4. Create the websocket hub and the services
//	5. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run loads the dataset, keeps it refreshed and serves until ctx is
// cancelled. Errors are returned to the caller; the package never exits
// the process.
package app
