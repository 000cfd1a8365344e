// Package api is the HTTP and WebSocket transport of the device
// configuration service.
//
// It is a thin adapter: handlers decode requests into device.Update values,
// call the device service and encode the resulting configuration. No
// business rule lives here apart from telling "location omitted" from
// "location: null" in PATCH bodies.
//
// Routes (all under /api/v1):
//
//	GET   /health          component health, no auth
//	GET   /metrics         Prometheus exposition, no auth
//	GET   /devices/{id}    configuration, 404 when unknown
//	PUT   /devices/{id}    create or replace, 201
//	PATCH /devices/{id}    partial update, 404/409/400
//	GET   /ws              event stream
//
// The server follows the same lifecycle as the infrastructure clients:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
