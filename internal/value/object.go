package value

// Object is an insertion-ordered map from string keys to values.
//
// An object created with NewFrame overlays a parent: Set writes to the child
// only, lookups fall through to the parent, and iteration visits the child keys
// followed by the parent keys the child does not shadow.
type Object struct {
	keys   []string
	values map[string]Value
	parent *Object
}

// NewObject creates an empty object
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// NewFrame creates an empty object overlaying parent. A nil parent yields a plain object.
func NewFrame(parent *Object) *Object {
	o := NewObject()
	o.parent = parent
	return o
}

// Parent returns the overlaid parent object, if any
func (o *Object) Parent() *Object {
	if o == nil {
		return nil
	}
	return o.parent
}

// Set stores a value under key, keeping the position of an existing key
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key from this object. Parent entries are not affected.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Get looks up key in the object and then in its parents
func (o *Object) Get(key string) (Value, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return Undefined(), false
}

// Find is Get without the found flag
func (o *Object) Find(key string) Value {
	v, _ := o.Get(key)
	return v
}

// Exists reports whether key is defined in the object or its parents
func (o *Object) Exists(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of visible keys, counting shadowed parent keys once
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	n := len(o.keys)
	if o.parent == nil {
		return n
	}
	o.parent.Range(func(key string, _ Value) bool {
		if _, shadowed := o.values[key]; !shadowed {
			n++
		}
		return true
	})
	return n
}

// Range calls fn for every visible entry in order until fn returns false
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
	o.parent.Range(func(key string, v Value) bool {
		if _, shadowed := o.values[key]; shadowed {
			return true
		}
		return fn(key, v)
	})
}

// Keys returns the visible keys in iteration order
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Range(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Clone returns a flat copy of the visible entries
func (o *Object) Clone() *Object {
	c := NewObject()
	o.Range(func(key string, v Value) bool {
		c.Set(key, v)
		return true
	})
	return c
}

// Array is an ordered list of values
type Array struct {
	items []Value
}

// NewArray creates an array holding items
func NewArray(items ...Value) *Array {
	return &Array{items: items}
}

// Len returns the number of elements
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns the element at index i
func (a *Array) At(i int) (Value, bool) {
	if a == nil || i < 0 || i >= len(a.items) {
		return Undefined(), false
	}
	return a.items[i], true
}

// Append adds elements at the end
func (a *Array) Append(items ...Value) {
	a.items = append(a.items, items...)
}

// Values returns the underlying elements
func (a *Array) Values() []Value {
	if a == nil {
		return nil
	}
	return a.items
}
