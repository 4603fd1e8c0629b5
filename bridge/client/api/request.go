package api

// Request is implemented by all request payloads sent to the DSM API.
type Request interface{}

// BaseRequest carries the query parameters common to every DSM API call.
type BaseRequest struct {
	Version   int    `synology:"version"`
	APIName   string `synology:"api"`
	APIMethod string `synology:"method"`
}

// ApiVersions maps an API name to the version this client speaks.
var ApiVersions = map[string]int{
	"SYNO.API.Auth":                        7,
	"SYNO.API.Info":                        1,
	"SYNO.DSM.Info":                        2,
	"SYNO.DSM.Network":                     2,
	"SYNO.Storage.CGI.Storage":             1,
	"SYNO.Core.System.Utilization":         1,
	"SYNO.Core.ExternalDevice.Storage.USB": 1,
	"SYNO.Backup.Task":                     1,
}

func NewRequest(apiName, apiMethod string) BaseRequest {
	return BaseRequest{
		Version:   ApiVersions[apiName],
		APIName:   apiName,
		APIMethod: apiMethod,
	}
}
