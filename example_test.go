package zimgo_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/zimgo"
	"github.com/hupe1980/zimgo/search"
)

// Example demonstrates creating an archive and reading an entry back.
func Example() {
	dir, err := os.MkdirTemp("", "zimgo-example-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	dest := filepath.Join(dir, "example.zim")

	creator, err := zimgo.NewCreator(dest)
	if err != nil {
		log.Fatal(err)
	}
	defer creator.Close()

	if err := creator.Start(); err != nil {
		log.Fatal(err)
	}
	item := zimgo.NewStringItem("greeting", "Greeting", "text/plain", "hello from zimgo")
	if err := creator.AddItem(item); err != nil {
		log.Fatal(err)
	}
	if err := creator.Finish(); err != nil {
		log.Fatal(err)
	}

	archive, err := zimgo.Open(dest)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	got, err := archive.Item("greeting")
	if err != nil {
		log.Fatal(err)
	}
	data, err := got.Data()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
	// Output: hello from zimgo
}

// Example_search demonstrates full-text search over an indexed archive.
func Example_search() {
	dir, err := os.MkdirTemp("", "zimgo-example-search-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	dest := filepath.Join(dir, "indexed.zim")

	creator, err := zimgo.NewCreator(dest, zimgo.WithIndexing("eng"))
	if err != nil {
		log.Fatal(err)
	}
	defer creator.Close()

	if err := creator.Start(); err != nil {
		log.Fatal(err)
	}
	front := zimgo.Hints{zimgo.HintFrontArticle: 1}
	page := "<html><body>Lighthouses guide ships along rocky coastlines.</body></html>"
	if err := creator.AddItem(zimgo.NewStringItem("lighthouse", "Lighthouse", "text/html", page).WithHints(front)); err != nil {
		log.Fatal(err)
	}
	if err := creator.Finish(); err != nil {
		log.Fatal(err)
	}

	archive, err := zimgo.Open(dest)
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	searcher, err := search.NewSearcher(archive)
	if err != nil {
		log.Fatal(err)
	}
	query, err := searcher.Search("rocky coastlines")
	if err != nil {
		log.Fatal(err)
	}
	results, err := query.Results(0, 1)
	if err != nil {
		log.Fatal(err)
	}
	for results.Next() {
		fmt.Println(results.Result().Path)
	}
	// Output: lighthouse
}
