package node

// Comment is an XML comment.
type Comment struct {
	Content string
}

func (*Comment) Type() Type {
	return CommentNode
}
