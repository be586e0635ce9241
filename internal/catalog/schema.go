// internal/catalog/schema.go
package catalog

// schemeSchema is the JSON schema every ingested scheme document is
// validated against before it can enter a snapshot.
const schemeSchema = `{
  "type": "object",
  "required": ["id", "name", "category", "criteria", "documents"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string"}
    },
    "description": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "category": {"type": "string", "minLength": 1},
    "priority": {"type": "integer"},
    "criteria": {
      "type": "object",
      "properties": {
        "minAge": {"type": "integer", "minimum": 0},
        "maxAge": {"type": "integer", "minimum": 0},
        "minIncome": {"type": "number", "minimum": 0},
        "maxIncome": {"type": "number", "minimum": 0},
        "occupations": {"type": "array", "items": {"type": "string"}},
        "states": {"type": "array", "items": {"type": "string"}},
        "minFamilySize": {"type": "integer", "minimum": 0},
        "gender": {"enum": ["", "any", "male", "female", "other"]},
        "narrativeRules": {"type": "array", "items": {"type": "string"}}
      }
    },
    "benefit": {
      "type": "object",
      "properties": {
        "description": {"type": "object", "additionalProperties": {"type": "string"}},
        "amount": {"type": "number", "minimum": 0}
      }
    },
    "documents": {
      "type": "array",
      "items": {"$ref": "#/definitions/document"}
    },
    "applicationSteps": {"type": "array", "items": {"type": "string"}},
    "sourceUrl": {"type": "string"},
    "updatedAt": {"type": "string"}
  },
  "definitions": {
    "document": {
      "type": "object",
      "required": ["id", "name", "typeTag"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "object", "minProperties": 1, "additionalProperties": {"type": "string"}},
        "description": {"type": "object", "additionalProperties": {"type": "string"}},
        "typeTag": {"type": "string", "minLength": 1},
        "mandatory": {"type": "boolean"},
        "priority": {"type": "integer"},
        "alternatives": {"type": "array", "items": {"$ref": "#/definitions/document"}}
      }
    }
  }
}`
