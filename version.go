package alena

const Version = "0.1.0"
