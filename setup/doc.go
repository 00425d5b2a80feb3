// Package setup bootstraps the reference corpus: it downloads the Parquet
// parts of the GitHub split of The Pile from Hugging Face, converts each
// part into a JSONL corpus shard and removes the Parquet staging directory
// afterwards. Parts and shards that already exist on disk are skipped, so
// an interrupted bootstrap can be resumed by running it again.
package setup
