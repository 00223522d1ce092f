package common

const (
	// AuthorizationHeaderName carries the bearer credential on HTTP requests.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey carries the bearer credential in gRPC metadata.
	// gRPC lower-cases metadata keys.
	AuthorizationMetadataKey = "authorization"

	// BearerScheme prefixes the token in outgoing Authorization values.
	BearerScheme = "Bearer"
)
