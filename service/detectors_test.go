package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoTransferDetector(t *testing.T) {
	d := &GeoTransferDetector{}

	det := d.Detect(
		"Personal data must remain within the European Union",
		"Primary datacenter: us-east-1",
	)
	require.NotNil(t, det)
	assert.Equal(t, "geo", det.Flag)
	assert.Contains(t, det.ActionStep, "EU region")

	// Regulation without a protected region never fires
	assert.Nil(t, d.Detect("Data must be handled with care", "Primary datacenter: us-east-1"))

	// Document without a foreign processing location never fires
	assert.Nil(t, d.Detect("Personal data must remain within the EU", "Primary datacenter: eu-west-1 (Frankfurt)"))

	// Case-insensitive region matching
	assert.NotNil(t, d.Detect("data stays in europe", "processing happens in INDIA"))
}

func TestRetentionDetector(t *testing.T) {
	d := &RetentionDetector{}

	det := d.Detect(
		"Records may be kept for a maximum 1 year",
		"Customer data is retained 5 years for analytics",
	)
	require.NotNil(t, det)
	assert.Equal(t, "retention", det.Flag)

	// Retention within the cap is compliant
	assert.Nil(t, d.Detect("maximum 1 year", "logs are retained 1 years"))

	// No cap in the regulation means nothing to violate
	assert.Nil(t, d.Detect("Records must be accurate", "data retained 5 years"))

	// No retention statement in the document means nothing to flag
	assert.Nil(t, d.Detect("maximum 1 year", "We respect user privacy"))

	// "retention ... N years" phrasing matches too
	assert.NotNil(t, d.Detect("max 1 year", "retention period of 3 years applies"))
}

func TestEncryptionDetector(t *testing.T) {
	d := &EncryptionDetector{}

	det := d.Detect(
		"All personal data must be encrypted at rest and in transit",
		"Data is stored in a shared database",
	)
	require.NotNil(t, det)
	assert.Equal(t, "encryption", det.Flag)

	// Document that mentions TLS satisfies the mandate
	assert.Nil(t, d.Detect("Data must be encrypted", "All traffic uses TLS 1.3"))

	// Regulation without an encryption mandate never fires
	assert.Nil(t, d.Detect("Data must be minimized", "Data is stored in plain text"))
}

func TestRunDetectorsMergesInOrder(t *testing.T) {
	regulation := "Personal data must remain within the EU, retained for maximum 1 year, and encrypted at rest"
	document := "Data is processed in us-east-1 and retained 7 years in a plain database"

	finding := RunDetectors(DefaultDetectors(), regulation, document)
	require.NotNil(t, finding)
	assert.Equal(t, []string{"geo", "retention", "encryption"}, finding.FlagsRaised)
	require.Len(t, finding.ActionSteps, 3)
	assert.Contains(t, finding.ActionSteps[0], "EU region")
	assert.Contains(t, finding.ActionSteps[1], "retention")
	assert.Contains(t, finding.ActionSteps[2], "encryption")
}

func TestRunDetectorsNoFinding(t *testing.T) {
	finding := RunDetectors(DefaultDetectors(),
		"Employees must complete annual training",
		"All employees complete training in January",
	)
	assert.Nil(t, finding)
}
