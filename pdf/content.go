package pdf

// An Operation is a content stream operator with its operands.
// - §7.8.2
type Operation struct {
	Operator string
	Operands []Object
}

// Op is shorthand for building an Operation.
func Op(operator string, operands ...Object) Operation {
	return Operation{Operator: operator, Operands: operands}
}

// EncodeContent serializes operations into content stream bytes,
// one operation per line.
func EncodeContent(operations []Operation) ([]byte, error) {
	buf := &buffer{}

	for _, op := range operations {
		for _, operand := range op.Operands {
			buf.Object(operand)
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}

	if buf.Err() != nil {
		return nil, maskErr(buf.Err())
	}
	return buf.Bytes(), nil
}
