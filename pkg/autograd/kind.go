package autograd

// Kind identifies the operation that produced a node and so its local
// derivative rule.
type Kind uint8

const (
	KindLeaf Kind = iota // input or parameter, no predecessors
	KindAdd              // l + r
	KindMul              // l * r
	KindPow              // n ** exponent
	KindTanh             // tanh(n)
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindPow:
		return "pow"
	case KindTanh:
		return "tanh"
	default:
		return "unknown"
	}
}

// arity is the number of predecessors a node of this kind has.
func (k Kind) arity() int {
	switch k {
	case KindAdd, KindMul:
		return 2
	case KindPow, KindTanh:
		return 1
	default:
		return 0
	}
}
