// Package influxdb records configuration history in InfluxDB.
//
// Every configuration the device service writes is recorded as a
// device_visibility point: tags device_id and for_customer, fields for
// roaming, validity and each individual violation. Operators use the
// series to see when and why a station dropped off the map.
//
// Writes go through the client library's non-blocking write API and are
// batched; errors are reported asynchronously.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	svc.SetRecorder(influxdb.NewVisibilityRecorder(client))
package influxdb
