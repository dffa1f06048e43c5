package tensor

// Kind identifies the operation a layer performs.
type Kind int

const (
	Other Kind = iota
	Input
	Convolutional
	ReLU
	Pooling
	InnerProduct
	DropOut
	LRN
	Split
	Softmax
)

var kindNames = map[string]Kind{
	"Input":        Input,
	"Convolution":  Convolutional,
	"ReLU":         ReLU,
	"Pooling":      Pooling,
	"InnerProduct": InnerProduct,
	"Dropout":      DropOut,
	"LRN":          LRN,
	"Split":        Split,
	"Softmax":      Softmax,
}

// ParseKind maps a layer type name to its kind. Unknown names are Other.
func ParseKind(name string) Kind {
	if k, ok := kindNames[name]; ok {
		return k
	}
	return Other
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "Other"
}
