// FILE: logbeacon/src/pkg/beacon/doc.go

// Package beacon captures telemetry from a host program and ships it in
// batches to a collection endpoint.
//
// Quick start:
//
//	sdk := beacon.New()
//	if err := sdk.Init(&beacon.Config{Endpoint: "https://collector.example/logs", AppName: "shop"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer sdk.Close()
//
//	sdk.Log("checkout started", map[string]any{"cart": 3})
//	client := sdk.WrapClient(&http.Client{})
//
// Records are buffered and sent every second; an ERROR record is sent at
// once. Delivery is fire-and-forget: nothing is retried and no delivery
// error reaches the caller. Close does not flush.
package beacon
