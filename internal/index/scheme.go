package index

var (
	bMeta      = []byte("meta")       // lang\x00slug -> metaBytes
	bAlias     = []byte("alias")      // lang\x00old -> newSlug
	bShort     = []byte("short")      // shortID -> lang\x00slug
	bIdxTag    = []byte("idx_tag")    // lang -> tag -> sub-bucket
	bIdxCat    = []byte("idx_cat")    // lang -> cat -> sub-bucket
	bIdxSeries = []byte("idx_series") // lang -> seriesName -> sub-bucket

	bIdxUpdated = []byte("idx_updated") // lang -> sub-bucket
	bIdxCreated = []byte("idx_created") // lang -> sub-bucket

	// 跨 Rebuild 保留
	bFingerprint = []byte("fingerprint") // outPath -> renderHash
	bBuild       = []byte("build")       // "last" -> BuildRecord
)

var rebuiltBuckets = [][]byte{
	bMeta, bAlias, bShort,
	bIdxTag, bIdxCat, bIdxSeries,
	bIdxUpdated, bIdxCreated,
}
