package catlink

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// ParamsSign computes the request signature the vendor API expects:
// parameters sorted by key, rendered as k=v, joined with &, the shared
// secret appended as a final key= entry, MD5 over the UTF-8 bytes,
// uppercase hex. Pure function of the parameter map.
func ParamsSign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	pairs = append(pairs, "key="+SignKey)

	sum := md5.Sum([]byte(strings.Join(pairs, "&")))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}
