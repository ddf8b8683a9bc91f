package signals

import "os"

type Notifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// Handler cancels the session when a shutdown signal arrives.
type Handler interface {
	Handle()
}
