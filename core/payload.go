package core

// PayloadBuilder assembles a point payload with a fluent API. Values
// are stored as the three kinds the vector store accepts; the qdrant
// backend converts them to wire values without further checks.
type PayloadBuilder struct {
	payload map[string]any
}

// NewPayloadBuilder creates an empty payload builder.
func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{payload: make(map[string]any)}
}

// String sets a string value.
func (b *PayloadBuilder) String(key, value string) *PayloadBuilder {
	b.payload[key] = value
	return b
}

// Integer sets an integer value.
func (b *PayloadBuilder) Integer(key string, value int64) *PayloadBuilder {
	b.payload[key] = value
	return b
}

// Double sets a floating-point value.
func (b *PayloadBuilder) Double(key string, value float64) *PayloadBuilder {
	b.payload[key] = value
	return b
}

// Build returns the assembled payload map.
func (b *PayloadBuilder) Build() map[string]any {
	return b.payload
}
