package convert

import "github.com/jinzhu/copier"

// StructAssign copies identically named fields from src into dst and returns
// dst. Used for model <-> domain <-> dto mapping.
func StructAssign(src interface{}, dst interface{}) interface{} {
	_ = copier.Copy(dst, src)
	return dst
}
