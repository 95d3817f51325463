package generator

// Brief describes the passage a marker should be filled with.
type Brief struct {
	Prompt string
	// Words 目标字数，0 表示不限制。
	Words int
	Tone  string
}
