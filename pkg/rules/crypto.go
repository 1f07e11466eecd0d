package rules

import (
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
)

var cipherFactories = []string{
	"createCipher", "createCipheriv", "createDecipher", "createDecipheriv",
	"createHash", "createHmac",
}

var weakAlgorithms = []string{"des", "rc2", "rc4", "bf", "blowfish", "md4", "md5", "sha1"}

type weakCipher struct {
	MetaData
}

// NewWeakCipher reports cipher and digest factories given a broken
// algorithm name.
func NewWeakCipher() Rule {
	return &weakCipher{MetaData{
		RuleID:   "weak-cipher",
		What:     "Use of weak cryptographic primitive",
		Severity: Medium,
	}}
}

func (r *weakCipher) Severity() Severity { return r.MetaData.Severity }

func (r *weakCipher) Sinks(mod *module.Module) []Sink {
	var sinks []Sink
	for _, call := range calls(mod.Program, cipherFactories...) {
		if a, ok := arg(call, 0); ok {
			name, _ := methodName(call.Callee)
			sinks = append(sinks, Sink{Node: call, Expr: a, What: name})
		}
	}
	return sinks
}

func (r *weakCipher) Unsafe(_ Sink, t traces.Trace) bool {
	value, ok := t.Constant()
	return ok && weakAlgorithm(value)
}

// weakAlgorithm matches OpenSSL algorithm names such as "des-ede3-cbc",
// "RC4" or "aes-128-ecb".
func weakAlgorithm(name string) bool {
	name = strings.ToLower(name)
	if strings.HasSuffix(name, "-ecb") || strings.Contains(name, "-ecb-") {
		return true
	}
	for _, alg := range weakAlgorithms {
		if name == alg || strings.HasPrefix(name, alg+"-") {
			return true
		}
	}
	return false
}
