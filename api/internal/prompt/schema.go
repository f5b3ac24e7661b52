package prompt

// ReplySchema is solve.schema.json: the shape every engine must return.
const ReplySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "solve.reply",
  "type": "object",
  "additionalProperties": false,
  "required": ["techniqueId", "analysis", "solutions"],
  "properties": {
    "techniqueId": { "type": "string" },
    "analysis": { "type": "string" },
    "solutions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["title", "text", "emoji", "category"],
        "properties": {
          "title": { "type": "string" },
          "text": { "type": "string" },
          "emoji": { "type": "string" },
          "category": { "type": "string" }
        }
      }
    }
  }
}`
