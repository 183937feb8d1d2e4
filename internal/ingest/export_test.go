package ingest

// SamplePayload exposes the shared fixture to the external test package.
var SamplePayload = samplePayload
