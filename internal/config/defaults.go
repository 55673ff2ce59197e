package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5000"}
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/naitei.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "./data/indices/vectors.bin"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "./data/indices/keyword"
	}
	if cfg.Storage.UploadPath == "" {
		cfg.Storage.UploadPath = "./uploads"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "./models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = "template"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4o-mini"
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 512
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = 0.7
	}
	if cfg.Datasets.Dir == "" {
		cfg.Datasets.Dir = "./datasets"
	}
	if cfg.Datasets.JobsFile == "" {
		cfg.Datasets.JobsFile = "jobs.yaml"
	}
	if cfg.Datasets.KnowledgeFile == "" {
		cfg.Datasets.KnowledgeFile = "knowledge.yaml"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 5
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 50
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 20
	}
	if cfg.Certificate.VerificationBaseURL == "" {
		cfg.Certificate.VerificationBaseURL = "http://localhost:3000/verify-certificate"
	}
	if cfg.Certificate.QRSize == 0 {
		cfg.Certificate.QRSize = 200
	}
}
