package model

import (
	"github.com/google/uuid"
	"github.com/alephcore/engine/timex"
)

func newID() string    { return uuid.NewString() }
func nowMillis() int64 { return timex.NowMillis() }
