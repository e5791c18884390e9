package votw

func iptr(v int) *int { return &v }

func fptr(v float64) *float64 { return &v }
