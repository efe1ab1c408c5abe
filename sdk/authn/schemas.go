package authn

import "github.com/xeipuuv/gojsonschema"

const userSchema = `{
	"type": "object",
	"required": ["id", "email", "role"],
	"properties": {
		"id": {"type": "integer"},
		"email": {"type": "string", "minLength": 1},
		"role": {"type": "string", "enum": ["User", "Admin"]}
	}
}`

var (
	authResultSchemaLoader = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["token", "user"],
		"properties": {
			"token": {"type": "string", "minLength": 1},
			"user": ` + userSchema + `
		}
	}`)

	// The profile endpoint may return the user bare or wrapped in an object.
	profileSchemaLoader = gojsonschema.NewStringLoader(`{
		"oneOf": [
			` + userSchema + `,
			{
				"type": "object",
				"required": ["user"],
				"properties": {"user": ` + userSchema + `}
			}
		]
	}`)
)
