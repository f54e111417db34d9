package types //nolint:revive

import (
	"slices"
)

// FnInfo stores metadata for function pointer types.
type FnInfo struct {
	Params []Field // names are optional
	Result TypeID  // NoTypeID means void
}

// RegisterFn creates or finds a function pointer type.
func (in *Interner) RegisterFn(params []Field, result TypeID) TypeID {
	if in != nil {
		for id := TypeID(1); int(id) < len(in.types); id++ {
			tt := in.types[id]
			if tt.Kind != KindFn {
				continue
			}
			if int(tt.Payload) >= len(in.fns) {
				continue
			}
			info := in.fns[tt.Payload]
			if info.Result == result && slices.Equal(info.Params, params) {
				return id
			}
		}
	}
	in.fns = append(in.fns, FnInfo{
		Params: cloneFields(params),
		Result: result,
	})
	slot := nextSlot(len(in.fns), "fn info")
	return in.internRaw(Type{Kind: KindFn, Payload: slot})
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}
