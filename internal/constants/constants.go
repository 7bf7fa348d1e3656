package constants

const USER_AGENT = "puttlog/0.1.0 (+https://github.com/puttlog/puttlog)"
