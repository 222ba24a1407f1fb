// Package storage provides the object-store abstraction the dataset reader
// and the statistics artifact are read through.
//
// Backends register a factory under a provider name and must be imported
// for New to resolve them:
//
//	import _ "github.com/kbukum/speechprep/storage/local"
//	import _ "github.com/kbukum/speechprep/storage/s3"
//
// Every backend reports a missing object from Download with an error that
// wraps os.ErrNotExist.
//
// # Configuration
//
//	storage:
//	  provider: "local"
//	  base_path: "/data/blizzard"
//
//	storage:
//	  provider: "s3"
//	  s3:
//	    bucket: "speech-corpora"
//	    prefix: "blizzard/"
//	    region: "eu-west-1"
package storage
