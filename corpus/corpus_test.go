package corpus

import (
	"io"
	"reflect"
	"strings"
	"testing"
)

// onlyReader hides the Seek method of its source.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}

func drain(t *testing.T, next func() ([]string, error)) [][]string {
	t.Helper()
	var out [][]string
	for {
		tokens, err := next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, tokens)
	}
}

func TestLineStream(t *testing.T) {
	src := `# name: toy corpus
the cat  sat

# a comment
 on the mat
`
	for _, reader := range []io.Reader{strings.NewReader(src), onlyReader{strings.NewReader(src)}} {
		s, err := NewLineStream(reader)
		if err != nil {
			t.Fatal(err)
		}
		want := [][]string{{"the", "cat", "sat"}, {"on", "the", "mat"}}
		if got := drain(t, s.Next); !reflect.DeepEqual(got, want) {
			t.Fatalf("first pass = %v, want %v", got, want)
		}
		if s.Identifier() != "toy corpus" {
			t.Fatalf("identifier = %q", s.Identifier())
		}
		if err := s.Reset(); err != nil {
			t.Fatal(err)
		}
		if got := drain(t, s.Next); !reflect.DeepEqual(got, want) {
			t.Fatalf("second pass = %v, want %v", got, want)
		}
	}
}

func TestSliceStream(t *testing.T) {
	s := FromText("a b\n\n c ")
	want := [][]string{{"a", "b"}, {"c"}}
	if got := drain(t, s.Next); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("exhausted stream should return io.EOF, got %v", err)
	}
	s.Reset()
	if got := drain(t, s.Next); len(got) != 2 {
		t.Fatalf("reset stream yields %d sequences", len(got))
	}
}
