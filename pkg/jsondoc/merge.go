package jsondoc

// Force deep-merges src into dst. For every key in src the src value wins;
// when both sides hold objects they are merged recursively. Arrays and
// scalars are replaced wholesale. New keys are appended after existing ones.
// src is never aliased into dst.
func Force(dst, src *Object) {
	for _, key := range src.keys {
		srcValue := src.values[key]

		srcObj, srcIsObj := srcValue.(*Object)
		dstObj, dstIsObj := dst.values[key].(*Object)

		if srcIsObj && dstIsObj {
			Force(dstObj, srcObj)

			continue
		}

		dst.Set(key, Clone(srcValue))
	}
}

// Defaults deep-merges src into dst only where keys are absent from dst.
// Existing values, including null, zero, false and empty containers, are
// kept. Objects present on both sides are merged recursively under the
// same rule.
func Defaults(dst, src *Object) {
	for _, key := range src.keys {
		srcValue := src.values[key]

		dstValue, present := dst.values[key]
		if !present {
			dst.Set(key, Clone(srcValue))

			continue
		}

		dstObj, dstIsObj := dstValue.(*Object)
		srcObj, srcIsObj := srcValue.(*Object)

		if dstIsObj && srcIsObj {
			Defaults(dstObj, srcObj)
		}
	}
}
