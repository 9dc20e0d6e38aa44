// Package measured ingests experimentally measured transfer-function records
// and prepares them for display against the compensator curves.
//
// The pipeline is parse -> derive (forward and inverse) -> filter invalid
// samples -> log-bin decimation -> stride thinning -> phase conditioning.
// The raw dataset is immutable after load; phase conditioning always works
// on copies so toggling options never loses information.
package measured
