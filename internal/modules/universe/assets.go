package universe

// memeSymbols is the designated high-volatility meme set. Membership here
// wins over every other slippage tier.
var memeSymbols = []string{
	"WIF", "BONK", "BOME", "POPCAT", "MYRO", "CATWIF", "PEPE", "DOGE", "SHIB",
}

// majorSymbols is the stable/major set that gets the default slippage
// tolerance when neither the meme nor the low-liquidity tier applies.
var majorSymbols = []string{
	"WETH", "WBTC", "USDC", "USDT",
}

// builtinAssets is the full tradeable universe. Addresses are ERC-20
// contract addresses, except the Solana-native meme coins which carry
// their SPL mint address.
var builtinAssets = []Asset{
	// Solana meme coins
	{Symbol: "WIF", Address: "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm", Decimals: 6, CoinGeckoID: "dogwifhat", DriftClass: DriftAggressive},
	{Symbol: "BONK", Address: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", Decimals: 5, CoinGeckoID: "bonk", DriftClass: DriftAggressive},
	{Symbol: "BOME", Address: "ukHH6c7mMyiWCf1b9pnWe25TSpkDDt3H5pQZgZ74J82", Decimals: 6, CoinGeckoID: "book-of-meme", DriftClass: DriftAggressive},
	{Symbol: "POPCAT", Address: "7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr", Decimals: 6, CoinGeckoID: "popcat", DriftClass: DriftAggressive},
	{Symbol: "MYRO", Address: "HhJpBhRRn4g56VsyLuT8DL5Bv31HkXqsrahTTUCZeZg4", Decimals: 6, CoinGeckoID: "myro", DriftClass: DriftAggressive},
	{Symbol: "CATWIF", Address: "", Decimals: 6, CoinGeckoID: "catwifhat", DriftClass: DriftAggressive},
	{Symbol: "SAMO", Address: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", Decimals: 6, CoinGeckoID: "samoyedcoin"},
	{Symbol: "FLOKI", Address: "0xcf0C122c6b73ff809C693DB761e7BaeBe62b6a2E", Decimals: 9, CoinGeckoID: "floki"},

	// Ethereum meme coins
	{Symbol: "PEPE", Address: "0x6982508145454Ce325dDbE47a25d4ec3d2311933", Decimals: 18, CoinGeckoID: "pepe", DriftClass: DriftAggressive},
	{Symbol: "WOJAK", Address: "0x5026F006B85729a8b14553FAE6af249aD16c9aaB", Decimals: 18, CoinGeckoID: "wojak"},
	{Symbol: "SHIB", Address: "0x95aD61b0a150d79219dCCf90f8715625171342dA", Decimals: 18, CoinGeckoID: "shiba-inu", DriftClass: DriftAggressive},
	{Symbol: "DOGE", Address: "", Decimals: 8, CoinGeckoID: "dogecoin", DriftClass: DriftAggressive},

	// Major cryptocurrencies
	{Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6, CoinGeckoID: "usd-coin", DriftClass: DriftConservative},
	{Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Decimals: 18, CoinGeckoID: "weth", DriftClass: DriftModerate},
	{Symbol: "WBTC", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Decimals: 8, CoinGeckoID: "wrapped-bitcoin", DriftClass: DriftModerate},
	{Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6, CoinGeckoID: "tether", DriftClass: DriftConservative},
	{Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Decimals: 18, CoinGeckoID: "dai", DriftClass: DriftConservative},
	{Symbol: "LINK", Address: "0x514910771AF9Ca656af840dff83E8264EcF986CA", Decimals: 18, CoinGeckoID: "chainlink", DriftClass: DriftModerate},
	{Symbol: "UNI", Address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", Decimals: 18, CoinGeckoID: "uniswap", DriftClass: DriftModerate},
	{Symbol: "AAVE", Address: "0x7Fc66500c84A76Ad7e9c93437bFc5Ac33E2DDaE9", Decimals: 18, CoinGeckoID: "aave", DriftClass: DriftModerate},
	{Symbol: "COMP", Address: "0xc00e94Cb662C3520282E6f5717214004A7f26888", Decimals: 18, CoinGeckoID: "compound-governance-token", DriftClass: DriftModerate},
	{Symbol: "MKR", Address: "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2", Decimals: 18, CoinGeckoID: "maker"},

	// DeFi tokens
	{Symbol: "CRV", Address: "0xD533a949740bb3306d119CC777fa900bA034cd52", Decimals: 18, CoinGeckoID: "curve-dao-token", DriftClass: DriftModerate},
	{Symbol: "YFI", Address: "0x0bc529c00C6401aEF6D220BE8C6Ea1667F6Ad93e", Decimals: 18, CoinGeckoID: "yearn-finance", DriftClass: DriftModerate},
	{Symbol: "SUSHI", Address: "0x6B3595068778DD592e39A122f4f5a5cF09C90fE2", Decimals: 18, CoinGeckoID: "sushi"},
	{Symbol: "1INCH", Address: "0x111111111117dC0aa78b770fA6A738034120C302", Decimals: 18, CoinGeckoID: "1inch"},
	{Symbol: "BAL", Address: "0xba100000625a3754423978a60c9317c58a424e3D", Decimals: 18, CoinGeckoID: "balancer"},

	// Layer 2 & scaling
	{Symbol: "MATIC", Address: "0x7D1AfA7B718fb893dB30A3aBc0Cfc608aCafEBB2", Decimals: 18, CoinGeckoID: "matic-network"},
	{Symbol: "OP", Address: "0x4200000000000000000000000000000000000042", Decimals: 18, CoinGeckoID: "optimism"},
	{Symbol: "ARB", Address: "0x912CE59144191C1204E64559FE8253a0e49E6548", Decimals: 18, CoinGeckoID: "arbitrum"},
	{Symbol: "IMX", Address: "0xF57e7e7C23978C3cAEC3C3548E3D615c346e79fF", Decimals: 18, CoinGeckoID: "immutable-x"},

	// Gaming & metaverse
	{Symbol: "AXS", Address: "0xBB0E17EF65F82AB018D8EDD776E8DD940327B28b", Decimals: 18, CoinGeckoID: "axie-infinity"},
	{Symbol: "SAND", Address: "0x3845badAde8e6dFF049820680d1F14bD3903a5d0", Decimals: 18, CoinGeckoID: "the-sandbox"},
	{Symbol: "MANA", Address: "0x0F5D2fB29fb7d3CFeE444a200298f468908cC942", Decimals: 18, CoinGeckoID: "decentraland"},
	{Symbol: "ENJ", Address: "0xF629cBd94d3791C9250152BD8dfBDF380E2a3B9c", Decimals: 18, CoinGeckoID: "enjin-coin"},
	{Symbol: "GALA", Address: "0x15D4c048F83bd7e37d49eA4C83a07267Ec4203dA", Decimals: 8, CoinGeckoID: "gala"},

	// AI & tech
	{Symbol: "OCEAN", Address: "0x967da4048cD07aB37855c090aAF366e4ce1b9F48", Decimals: 18, CoinGeckoID: "ocean-protocol"},
	{Symbol: "FET", Address: "0xaea46A60368A7bD060eec7DF8CBa43b7EF41Ad85", Decimals: 18, CoinGeckoID: "fetch-ai"},
	{Symbol: "AGIX", Address: "0x5B7533812759B45C965ED374383C9E936a90d628", Decimals: 8, CoinGeckoID: "singularitynet"},
	{Symbol: "RNDR", Address: "0x6123B0049F904d730dB3C36a31167D9d4121fA6B", Decimals: 18, CoinGeckoID: "render-token"},
}
