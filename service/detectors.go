package service

import (
	"regexp"
	"strconv"
)

// GapDetector examines a regulation/document text pair that already cleared
// the similarity gate and reports whether it found a compliance gap.
// Detectors are pure and independent; the engine runs every registered
// detector and concatenates action steps in registration order.
type GapDetector interface {
	Name() string
	Detect(regulationText, documentText string) *Detection
}

// Detection is a single detector's positive result
type Detection struct {
	Flag       string
	ActionStep string
}

// DefaultDetectors returns the detector registry in declaration order
func DefaultDetectors() []GapDetector {
	return []GapDetector{
		&GeoTransferDetector{},
		&RetentionDetector{},
		&EncryptionDetector{},
	}
}

var (
	protectedRegionRe   = regexp.MustCompile(`(?i)\b(EU|Europe|European Union)\b`)
	foreignProcessingRe = regexp.MustCompile(`(?i)\b(us|usa|us-east-1|us-west-2|india|ap-south-1)\b`)
	retentionRe         = regexp.MustCompile(`(?i)retain(ed|ion).*?(\d+)\s+years?`)
	retentionCapRe      = regexp.MustCompile(`(?i)\bmax(?:imum)?\s*1\s+year\b`)
	encryptionMandateRe = regexp.MustCompile(`(?i)\bencrypted\b|\bTLS\b|\bencryption at rest\b`)
)

// GeoTransferDetector fires when the regulation references a protected
// region and the document references a disjoint processing location.
type GeoTransferDetector struct{}

// Name implements GapDetector
func (d *GeoTransferDetector) Name() string { return "geo" }

// Detect implements GapDetector
func (d *GeoTransferDetector) Detect(regulationText, documentText string) *Detection {
	if !protectedRegionRe.MatchString(regulationText) {
		return nil
	}
	if !foreignProcessingRe.MatchString(documentText) {
		return nil
	}
	return &Detection{
		Flag:       d.Name(),
		ActionStep: "Move your database to an EU region or implement lawful transfer mechanisms (SCCs).",
	}
}

// RetentionDetector fires when the document's retention period numerically
// exceeds the regulation's maximum.
type RetentionDetector struct{}

// Name implements GapDetector
func (d *RetentionDetector) Name() string { return "retention" }

// Detect implements GapDetector
func (d *RetentionDetector) Detect(regulationText, documentText string) *Detection {
	match := retentionRe.FindStringSubmatch(documentText)
	if match == nil {
		return nil
	}
	years, err := strconv.Atoi(match[2])
	if err != nil {
		return nil
	}
	if !retentionCapRe.MatchString(regulationText) {
		return nil
	}
	if years <= 1 {
		return nil
	}
	return &Detection{
		Flag:       d.Name(),
		ActionStep: "Adjust retention to meet regulatory maximum (purge/archive older records).",
	}
}

// EncryptionDetector fires when the regulation mandates encryption or TLS
// and the document contains no matching assurance language.
type EncryptionDetector struct{}

// Name implements GapDetector
func (d *EncryptionDetector) Name() string { return "encryption" }

// Detect implements GapDetector
func (d *EncryptionDetector) Detect(regulationText, documentText string) *Detection {
	if !encryptionMandateRe.MatchString(regulationText) {
		return nil
	}
	if encryptionMandateRe.MatchString(documentText) {
		return nil
	}
	return &Detection{
		Flag:       d.Name(),
		ActionStep: "Enable encryption at rest and TLS in transit; update config & document keys.",
	}
}

// Finding is the combined output of all detectors for one pair
type Finding struct {
	FlagsRaised []string
	ActionSteps []string
}

// RunDetectors evaluates every detector against the pair and merges the
// results. Returns nil when no detector fired.
func RunDetectors(detectors []GapDetector, regulationText, documentText string) *Finding {
	finding := &Finding{}
	for _, d := range detectors {
		if det := d.Detect(regulationText, documentText); det != nil {
			finding.FlagsRaised = append(finding.FlagsRaised, det.Flag)
			finding.ActionSteps = append(finding.ActionSteps, det.ActionStep)
		}
	}
	if len(finding.FlagsRaised) == 0 {
		return nil
	}
	return finding
}
