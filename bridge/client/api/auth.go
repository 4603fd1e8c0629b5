package api

// AuthAPI is the authentication endpoint used for login and logout.
const AuthAPI = "SYNO.API.Auth"

type LoginRequest struct {
	BaseRequest
	Account string `synology:"account"`
	Passwd  string `synology:"passwd"`
	Session string `synology:"session"`
	Format  string `synology:"format"`
}

type LoginResponse struct {
	BaseResponse
	SessionID   string `mapstructure:"sid"`
	DeviceToken string `mapstructure:"did"`
}

func (r LoginResponse) ErrorSummaries() []ErrorSummary {
	return []ErrorSummary{AuthErrors}
}

func NewLoginRequest(account, passwd, session string) LoginRequest {
	return LoginRequest{
		BaseRequest: NewRequest(AuthAPI, "login"),
		Account:     account,
		Passwd:      passwd,
		Session:     session,
		Format:      "cookie",
	}
}

type LogoutRequest struct {
	BaseRequest
	Session string `synology:"session"`
}

type LogoutResponse struct {
	BaseResponse
}

func NewLogoutRequest(session string) LogoutRequest {
	return LogoutRequest{
		BaseRequest: NewRequest(AuthAPI, "logout"),
		Session:     session,
	}
}

// InfoRequest queries the API catalogue; used as a cheap liveness probe for
// cached sessions.
type InfoRequest struct {
	BaseRequest
	Query string `synology:"query"`
}

type InfoData struct {
	Path       string `mapstructure:"path"`
	MinVersion int    `mapstructure:"minVersion"`
	MaxVersion int    `mapstructure:"maxVersion"`
}

type InfoResponse struct {
	BaseResponse
	APIs map[string]InfoData `mapstructure:",remain"`
}

func NewInfoRequest() InfoRequest {
	return InfoRequest{
		BaseRequest: NewRequest("SYNO.API.Info", "query"),
		Query:       "all",
	}
}
