package config

// Version information, set at build time

var Version = "development"
var CommitHash = "development"
var BuildTimestamp = "0000-00-00T00:00:00Z"

// Env/flag prefix used by the configuration loaders

var DefaultNamePrefix = "LINKD_"

// Main app config

type Config struct {
	AppURL        string `description:"Public URL of the linking service."`
	DatabasePath  string `description:"Path to the sqlite database file."`
	DefaultListID string `description:"Fallback list id for unlinked assistant sessions."`
	Server        ServerConfig
	Client        ClientConfig
	Tokens        TokenConfig
	Cleanup       CleanupConfig
	Identity      IdentityConfig
	Log           LogConfig
}

type ServerConfig struct {
	Address        string `description:"Address the server binds to."`
	Port           int    `description:"Port the server listens on."`
	TrustedProxies string `description:"Comma separated list of trusted proxies."`
}

// ClientConfig is the allow-list for the voice-assistant platform client.
// The secret is optional; when empty it is not enforced at the token
// endpoint.
type ClientConfig struct {
	ID         string `description:"Allowed OAuth client id."`
	Secret     string `description:"Allowed OAuth client secret."`
	SecretFile string `description:"File containing the allowed OAuth client secret."`
}

type TokenConfig struct {
	Issuer                string `description:"Issuer embedded in access tokens."`
	LinkCodeTTLMinutes    int    `description:"Lifetime of link codes in minutes."`
	AuthCodeTTLMinutes    int    `description:"Lifetime of authorization codes in minutes."`
	AccessTokenTTLSeconds int    `description:"Lifetime of access tokens in seconds."`
	RefreshTokenTTLDays   int    `description:"Lifetime of refresh tokens in days."`
	InviteTTLDays         int    `description:"Lifetime of invites in days."`
}

type CleanupConfig struct {
	IntervalMinutes     int    `description:"Minutes between scheduled cleanup runs."`
	GraceMinutes        int    `description:"Grace period before expired credentials are deleted."`
	InviteRetentionDays int    `description:"Days expired invites are retained before deletion."`
	MaintenanceSecret   string `description:"Shared secret for the manual cleanup trigger."`
}

type IdentityConfig struct {
	Secret string `description:"Secret used to verify web client identity tokens."`
}

type LogConfig struct {
	Level string `description:"Log level (trace, debug, info, warn, error)."`
	JSON  bool   `description:"Log in JSON format."`
}

// UserContext is the identity resolved for an authenticated web client
// request, set on the gin context by the context middleware.
type UserContext struct {
	UID        string
	IsLoggedIn bool
}

// Redirect queries

type CallbackQuery struct {
	Code  string `url:"code"`
	State string `url:"state,omitempty"`
}

// Audience embedded in access tokens, shared with the assistant skill.

var AccessTokenAudience = "alexa-shopping-list"
