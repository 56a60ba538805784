// Package swagger embeds the OpenAPI document of the HTTP API.
package swagger

import _ "embed"

// OpenAPI is the OpenAPI 3 document served at /openapi.json.
//
//go:embed openapi.json
var OpenAPI []byte
