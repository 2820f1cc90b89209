package node

// ProcessingInstruction is a processing instruction.
type ProcessingInstruction struct {
	Target string
	Data   string
}

func (*ProcessingInstruction) Type() Type {
	return ProcessingInstructionNode
}
