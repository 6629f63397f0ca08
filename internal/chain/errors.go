package chain

import "errors"

// ErrUnavailable marks a transport-level RPC failure (network error,
// timeout, endpoint overload). Callers treat it as transient: the tick
// is abandoned and retried on the next interval.
var ErrUnavailable = errors.New("rpc endpoint unavailable")

func classify(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrUnavailable, err)
}
