package render

// ConfigError reports render options that cannot produce a legible
// timeline, such as a terminal too narrow to give every visible phase a
// cell. The caller may retry with a larger assumed width or fall back to
// the tabular listing alone.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "render: " + e.Reason
}
