package pubsub

import (
	"context"
	"testing"

	"github.com/Kai120789/marketplace/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, name, want string
	}{
		{"shop", "marketplace-orders", "projects/shop/topics/marketplace-orders"},
		{"shop", " projects/other/topics/x ", "projects/other/topics/x"},
		{"", "marketplace-orders", ""},
		{"shop", "", ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	names := topicNames(config.PubSubConfig{OrdersTopic: "orders", ReviewsTopic: "  ", CatalogTopic: "catalog"})
	if len(names) != 2 || names[0] != "orders" || names[1] != "catalog" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	var c *Client
	if c.Publisher("orders") != nil {
		t.Fatal("nil client should return nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
