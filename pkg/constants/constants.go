package constants

type ContextKey string

const (
	AppKey       ContextKey = "app"
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	UserKey      ContextKey = "user"
	TenantIDKey  ContextKey = "tenantID"
	RoleClaimKey ContextKey = "roleClaim"
	OrgNameKey   ContextKey = "orgName"
	RequestIDKey ContextKey = "requestID"
	SessionKey   ContextKey = "wizardSession"
)
