package scanner

// Cursor hands out credentials round-robin and remembers which ones have
// hit their quota. A credential marked dead is skipped by Next until the
// end of the run. Not safe for concurrent use; the scan loop is
// sequential.
type Cursor struct {
	credentials []string
	dead        map[string]bool
	idx         int
}

// NewCursor creates a cursor over a fixed credential list.
func NewCursor(credentials []string) *Cursor {
	return &Cursor{
		credentials: credentials,
		dead:        make(map[string]bool),
	}
}

// Next returns the next live credential, advancing the cursor. It returns
// false when every credential is dead or the list is empty.
func (c *Cursor) Next() (string, bool) {
	for range c.credentials {
		cred := c.credentials[c.idx%len(c.credentials)]
		c.idx++
		if !c.dead[cred] {
			return cred, true
		}
	}
	return "", false
}

// MarkDead flags a credential as quota-exhausted for the rest of the run.
func (c *Cursor) MarkDead(cred string) {
	c.dead[cred] = true
}

// Live reports how many credentials are still usable.
func (c *Cursor) Live() int {
	n := 0
	for _, cred := range c.credentials {
		if !c.dead[cred] {
			n++
		}
	}
	return n
}
