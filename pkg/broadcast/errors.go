package broadcast

import "errors"

var ErrClosed = errors.New("broadcast: broadcaster is closed")
