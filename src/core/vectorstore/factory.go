package vectorstore

import (
	"unicode"
	"unicode/utf8"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/tmc/langchaingo/embeddings"

	"ragrouter/src/storage/qdrant"
	"ragrouter/src/storage/weaviate"
)

// IndexName builds the backend index name for a domain, e.g. "Policy" + "hr"
// gives "PolicyHr". Weaviate requires class names to start upper case.
func IndexName(prefix, name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return prefix
	}
	return prefix + string(unicode.ToUpper(r)) + name[size:]
}

func WeaviateFactory(sdk *weaviate.SDK, embedder embeddings.Embedder, prefix string, opts ...weaviate.StoreOption) StoreFactory {
	return func(name string) (Store, error) {
		return weaviate.NewStore(sdk, IndexName(prefix, name), embedder, opts...), nil
	}
}

func QdrantFactory(client *qdrantclient.Client, embedder embeddings.Embedder, prefix string) StoreFactory {
	return func(name string) (Store, error) {
		return qdrant.NewStore(client, IndexName(prefix, name), embedder), nil
	}
}
