package models

// NetworkType is the radio access technology a measurement was taken on.
type NetworkType string

const (
	NetworkTypeGSM     NetworkType = "GSM"
	NetworkTypeGPRS    NetworkType = "GPRS"
	NetworkTypeEDGE    NetworkType = "EDGE"
	NetworkTypeUMTS    NetworkType = "UMTS"
	NetworkTypeHSPA    NetworkType = "HSPA"
	NetworkTypeHSPAP   NetworkType = "HSPA+"
	NetworkTypeLTE     NetworkType = "LTE"
	NetworkTypeLTEAdv  NetworkType = "LTE-Adv"
	NetworkType5G      NetworkType = "5G"
	NetworkTypeUnknown NetworkType = "UNKNOWN"
)

// NetworkTypes lists every accepted network type.
var NetworkTypes = []NetworkType{
	NetworkTypeGSM,
	NetworkTypeGPRS,
	NetworkTypeEDGE,
	NetworkTypeUMTS,
	NetworkTypeHSPA,
	NetworkTypeHSPAP,
	NetworkTypeLTE,
	NetworkTypeLTEAdv,
	NetworkType5G,
	NetworkTypeUnknown,
}

// Valid reports whether t is one of the declared network types.
func (t NetworkType) Valid() bool {
	for _, candidate := range NetworkTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

// TestType is the kind of network-quality probe a test result came from.
type TestType string

const (
	TestTypeHTTPDownload TestType = "HTTPD"
	TestTypeHTTPUpload   TestType = "HTTPU"
	TestTypePing         TestType = "PING"
	TestTypeWeb          TestType = "WEB"
	TestTypeDNS          TestType = "DNS"
	TestTypeSMS          TestType = "SMS"
)

// TestTypes lists every accepted test type.
var TestTypes = []TestType{
	TestTypeHTTPDownload,
	TestTypeHTTPUpload,
	TestTypePing,
	TestTypeWeb,
	TestTypeDNS,
	TestTypeSMS,
}

// Valid reports whether t is one of the declared test types.
func (t TestType) Valid() bool {
	for _, candidate := range TestTypes {
		if t == candidate {
			return true
		}
	}
	return false
}
