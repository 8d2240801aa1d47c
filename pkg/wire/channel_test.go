package wire

// testChannel is an in-memory Channel. Bytes added with push only become
// available after a Skip, like Stream.
type testChannel struct {
	data    []byte
	pending []byte
	pos     int
	mark    int
	written []byte
	skips   int
}

func newTestChannel(data ...byte) *testChannel {
	return &testChannel{data: data, mark: -1}
}

func (c *testChannel) add(p ...byte) *testChannel {
	c.data = append(c.data, p...)
	return c
}

func (c *testChannel) push(p ...byte) *testChannel {
	c.pending = append(c.pending, p...)
	return c
}

func (c *testChannel) Available() int {
	return len(c.data) - c.pos
}

func (c *testChannel) ReadByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, ErrStarved
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *testChannel) WriteByte(b byte) error {
	c.written = append(c.written, b)
	return nil
}

func (c *testChannel) Mark(int) {
	c.mark = c.pos
}

func (c *testChannel) Reset() error {
	if c.mark < 0 {
		return ErrInvalidMark
	}
	c.pos, c.mark = c.mark, -1
	return nil
}

func (c *testChannel) Skip(n int) (int, error) {
	c.skips++
	c.data, c.pending = append(c.data, c.pending...), nil
	if avail := c.Available(); n > avail {
		n = avail
	}
	c.pos += n
	return n, nil
}

func (c *testChannel) Clear() error {
	c.data, c.pending, c.pos, c.mark = nil, nil, 0, -1
	return nil
}
