package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/bluesky-social/profiledir/syntax"
)

func ExampleAPIDirectory() {
	// don't run this as a CI test! (no "Output:" section)

	ctx := context.Background()
	dir := NewAPIDirectory(DefaultHost)

	handle, _ := syntax.ParseHandle("octocat")

	p, err := dir.LookupUser(ctx, handle)
	if errors.Is(err, ErrNotFound) {
		fmt.Println("no such user")
		return
	} else if err != nil {
		fmt.Println(KindOf(err), ErrorMessage(err))
		return
	}
	fmt.Println(p.Handle, p.Followers, p.Following)

	followers, _ := dir.Followers(ctx, handle)
	for _, f := range followers {
		fmt.Println(f.Handle)
	}
}
