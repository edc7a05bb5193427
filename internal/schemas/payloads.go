package schemas

// Raw payload schemas for the JSON data sources. The shapes mirror what the
// upstream aggregator endpoints return; collectors validate against these
// before mapping into internal result types.

// NewsPayload is the schema for the news aggregator response.
const NewsPayload = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["articles"],
  "properties": {
    "articles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string"},
          "sentiment": {"type": "number", "minimum": -1, "maximum": 1},
          "url": {"type": "string"}
        }
      }
    },
    "overall_sentiment": {"type": "number", "minimum": -1, "maximum": 1}
  }
}`

// SocialPayload is the schema for the social mention aggregator response.
const SocialPayload = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["mention_count"],
  "properties": {
    "mention_count": {"type": "integer", "minimum": 0},
    "engagement_rate": {"type": "number", "minimum": 0},
    "overall_sentiment": {"type": "number", "minimum": -1, "maximum": 1}
  }
}`

// ValidateNewsPayload validates a raw news aggregator response body.
func ValidateNewsPayload(jsonContent string) error {
	return ValidateJSONString("news_payload", NewsPayload, jsonContent)
}

// ValidateSocialPayload validates a raw social aggregator response body.
func ValidateSocialPayload(jsonContent string) error {
	return ValidateJSONString("social_payload", SocialPayload, jsonContent)
}
