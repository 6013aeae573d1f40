// Package roomsearch provides multimodal similarity search over a collection
// of room photographs, backed by Amazon Bedrock embeddings and Amazon S3
// Vectors.
//
// The repository is split into an offline build path and an online query path:
//
//	dataset.Scan           enumerate a category-labelled image tree
//	pipeline.EmbedAll      one embedding per image, bounded concurrency
//	dataset.WriteArtifact  persist records to a CSV artifact
//	ingest.Ingestor        batched upsert of vectors into S3 Vectors
//	search.Service         embed a text or image query, top-K retrieval
//
// # Quick Start
//
//	cfg, _ := config.Load()
//	awsCfg, _ := awsconfig.LoadDefaultConfig(ctx)
//
//	embedder := embedding.NewClient(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID,
//	    embedding.WithDimension(cfg.Dimension))
//	store := vectorstore.New(s3vectors.NewFromConfig(awsCfg), cfg.VectorBucketName, cfg.VectorIndexName)
//
//	svc := search.NewService(embedder, store)
//	res, _ := svc.Search(ctx, embedding.TextQuery("modern kitchen"), 5)
//
// This package itself only carries the shared Logger and the domain error
// types; all behavior lives in the subpackages above.
package roomsearch
