package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", ":9090", "-d", "postgres://u:p@db:5432/tf", "-s", "key1", "-t", "30", "-r", "10080"}, expectPanic: false,
			expected: &Config{EndpointAddr: ":9090", DatabaseDSN: "postgres://u:p@db:5432/tf", SecretKey: "key1",
				AccessTokenValidityDuration: 30 * time.Minute, RefreshTokenValidityDuration: 10080 * time.Minute}},
		{name: "Test2 S3 flags", args: []string{"cmd", "-u", "root", "-p", "pw", "-b", "blobs", "-g", "eu-west-1", "-e", "http://minio:9000/", "-x", "http://cdn.example/blobs", "-m", "2048"}, expectPanic: false,
			expected: &Config{S3RootUser: "root", S3RootPassword: "pw", S3Bucket: "blobs", S3Region: "eu-west-1",
				S3BaseEndpoint: "http://minio:9000/", S3PublicBaseURL: "http://cdn.example/blobs", MaxRecordSize: 2048}},
		{name: "Test3 incorrect token validity", args: []string{"cmd", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
