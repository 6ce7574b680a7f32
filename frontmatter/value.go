package frontmatter

// Kind discriminates the shapes a front-matter value can take.
type Kind int

const (
	// Pending is a key written with an empty value. It becomes a List when a
	// continuation line ("- item") follows.
	Pending Kind = iota
	// Scalar is a single string value.
	Scalar
	// List is an ordered sequence of strings.
	List
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case List:
		return "list"
	default:
		return "pending"
	}
}

// Value is a single front-matter value.
type Value struct {
	kind  Kind
	text  string
	items []string
}

// ScalarValue returns a Scalar holding s.
func ScalarValue(s string) Value {
	return Value{kind: Scalar, text: s}
}

// ListValue returns a List holding items.
func ListValue(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{kind: List, items: items}
}

// PendingValue returns a placeholder awaiting continuation lines.
func PendingValue() Value {
	return Value{kind: Pending}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// Text returns the scalar string, or "" for other kinds.
func (v Value) Text() string { return v.text }

// Items returns the list elements, or nil for other kinds.
func (v Value) Items() []string { return v.items }

func (v Value) append(item string) Value {
	if v.kind != List {
		v = ListValue()
	}
	items := make([]string, len(v.items), len(v.items)+1)
	copy(items, v.items)
	v.items = append(items, item)
	return v
}

// Metadata is the parsed content of a front-matter block.
type Metadata map[string]Value

// String returns the value of key when it is a non-empty scalar.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v.Kind() != Scalar || v.Text() == "" {
		return "", false
	}
	return v.Text(), true
}

// List returns the value of key when it is a list.
func (m Metadata) List(key string) ([]string, bool) {
	v, ok := m[key]
	if !ok || v.Kind() != List {
		return nil, false
	}
	return v.Items(), true
}
