package logging

// Logger is the logging surface handed to components through their constructors.
type Logger interface {
	Printf(format string, v ...any)
}
