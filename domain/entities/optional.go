package entities

// Optional values distinguish "the device did not report this field" from a
// genuine zero. Parsers leave fields unknown when they cannot locate them;
// the mapper decides per field whether unknown becomes a zero value or an
// explicit unknown marker. The zero value of every Opt type is unknown.

// OptString is a string that may be absent from device output.
type OptString struct {
	Value string
	Known bool
}

// String wraps a known string value.
func String(v string) OptString { return OptString{Value: v, Known: true} }

// Or returns the value when known, def otherwise.
func (o OptString) Or(def string) string {
	if o.Known {
		return o.Value
	}
	return def
}

// OptInt is an integer that may be absent from device output.
type OptInt struct {
	Value int64
	Known bool
}

// Int wraps a known integer value.
func Int(v int64) OptInt { return OptInt{Value: v, Known: true} }

func (o OptInt) Or(def int64) int64 {
	if o.Known {
		return o.Value
	}
	return def
}

// OptFloat is a float that may be absent from device output.
type OptFloat struct {
	Value float64
	Known bool
}

// Float wraps a known float value.
func Float(v float64) OptFloat { return OptFloat{Value: v, Known: true} }

func (o OptFloat) Or(def float64) float64 {
	if o.Known {
		return o.Value
	}
	return def
}

// OptBool is a boolean that may be absent from device output.
type OptBool struct {
	Value bool
	Known bool
}

// Bool wraps a known boolean value.
func Bool(v bool) OptBool { return OptBool{Value: v, Known: true} }

func (o OptBool) Or(def bool) bool {
	if o.Known {
		return o.Value
	}
	return def
}
