package highlight

// DefaultFragmentSize is used when no fragment size is configured.
const DefaultFragmentSize = 100

// Config controls result highlighting.
type Config struct {
	PreTag       string
	PostTag      string
	FragmentSize int
}

// Enabled reports whether both markers are configured.
func (c Config) Enabled() bool { return c.PreTag != "" && c.PostTag != "" }

// Size returns the fragment size, falling back to DefaultFragmentSize.
func (c Config) Size() int {
	if c.FragmentSize <= 0 {
		return DefaultFragmentSize
	}
	return c.FragmentSize
}

// Disabled returns a config that turns highlighting off.
func Disabled() Config { return Config{} }
