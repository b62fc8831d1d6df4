package codec_test

import (
	"testing"

	"github.com/yaklabco/gomobiledoc/pkg/codec"
)

func FuzzUnmarshal(f *testing.F) {
	f.Add([]byte(`{"version":"0.3.2","atoms":[],"cards":[],"markups":[],"sections":[]}`))
	f.Add([]byte(`{"version":"0.3.2","atoms":[["mention","@bob",{}]],"cards":[["hr",{}]],"markups":[["b"]],"sections":[[1,"p",[[0,[0],1,"a"],[1,[],0,0]]],[10,0]]}`))
	f.Add([]byte(`{"version":"0.2.0","sections":[[["b"]],[[1,"p",[[[0],1,"x"]]],[10,"image",{"src":"a.png"}]]]}`))
	f.Add([]byte(`{"version":"0.3.1","atoms":[],"cards":[],"markups":[],"sections":[[3,"ul",[[[0,[],0,"one"]]]],[2,"cat.png"]]}`))
	f.Add([]byte(`{"version":"9"}`))
	f.Add([]byte(`[1,2,3]`))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		post, err := codec.Unmarshal(data)
		if err != nil {
			return
		}

		out, err := codec.Marshal(post, codec.Version032)
		if err != nil {
			t.Fatalf("Marshal of decoded post failed: %v", err)
		}
		again, err := codec.Unmarshal(out)
		if err != nil {
			t.Fatalf("Unmarshal of re-encoded post failed: %v\n%s", err, out)
		}
		if got, want := again.Sections.Len(), post.Sections.Len(); got != want {
			t.Errorf("sections after round trip = %d, want %d", got, want)
		}
	})
}
