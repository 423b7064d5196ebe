package config

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyFile 密钥文件路径
	// 为空时在内存中生成临时密钥；文件不存在时生成并写入
	KeyFile string `json:"key_file"`

	// Password 密钥文件口令，为空时明文存储种子
	Password string `json:"password,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{}
}
