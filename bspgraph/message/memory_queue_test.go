package message

import (
	"fmt"
	"testing"

	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(InMemoryQueueTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type InMemoryQueueTestSuite struct {
}

func (s *InMemoryQueueTestSuite) TestFIFODelivery(c *gc.C) {
	q := NewInMemoryQueue()
	defer func() { c.Assert(q.Close(), gc.IsNil) }()

	for i := 0; i < 10; i++ {
		c.Assert(q.Enqueue(intMsg(i)), gc.IsNil)
	}
	c.Assert(q.PendingMessages(), gc.Equals, true)

	var got []int
	it := q.Messages()
	for it.Next() {
		got = append(got, int(it.Message().(intMsg)))
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(got, gc.DeepEquals, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, gc.Commentf("messages must be delivered in arrival order"))
	c.Assert(q.PendingMessages(), gc.Equals, false)
}

func (s *InMemoryQueueTestSuite) TestDiscardMessages(c *gc.C) {
	q := NewInMemoryQueue()
	defer func() { c.Assert(q.Close(), gc.IsNil) }()

	c.Assert(q.Enqueue(intMsg(42)), gc.IsNil)
	c.Assert(q.DiscardMessages(), gc.IsNil)
	c.Assert(q.PendingMessages(), gc.Equals, false)
	c.Assert(q.Messages().Next(), gc.Equals, false)
}

type intMsg int

func (m intMsg) Type() string { return fmt.Sprint(int(m)) }
