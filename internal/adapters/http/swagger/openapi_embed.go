package swagger

import _ "embed"

// OpenAPI is the analyze API description served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
